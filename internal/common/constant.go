// Package common contains shared constants, the error taxonomy and small
// helpers used by every layer of the course image service.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// File area coordinates used by the upload flow.
const (
	ComponentUser   = "user"
	ComponentCourse = "course"

	FileAreaDraft         = "draft"
	FileAreaPrivate       = "private"
	FileAreaOverviewFiles = "overviewfiles"

	RootFilePath = "/"
)

// CapabilityCourseUpdate is required in the course context to replace its overview image.
const CapabilityCourseUpdate = "moodle/course:update"

// PrivacyMetadata is the privacy declaration of the service: it keeps no personal data.
const PrivacyMetadata = "The course image upload service does not store any personal data."
