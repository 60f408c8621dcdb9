// Package api defines the wire contract of the course image service: the
// message types, the JSON codec they travel with, the gRPC service
// descriptor, a client, and the registry of exposed web-service functions.
package api

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// UploadCourseImageRequest mirrors the parameters of local_ws_subir_imagen_curso.
type UploadCourseImageRequest struct {
	ContextID    int64  `json:"contextid,omitempty"`
	Component    string `json:"component"`
	FileArea     string `json:"filearea"`
	ItemID       int64  `json:"itemid,omitempty"`
	FilePath     string `json:"filepath,omitempty"`
	FileName     string `json:"filename"`
	FileContent  string `json:"filecontent"`
	ContextLevel string `json:"contextlevel,omitempty"`
	InstanceID   int64  `json:"instanceid,omitempty"`
	CourseID     int64  `json:"courseid"`
}

type UploadCourseImageResponse struct {
	ContextID int64  `json:"contextid"`
	Component string `json:"component"`
	FileArea  string `json:"filearea"`
	ItemID    int64  `json:"itemid"`
	FilePath  string `json:"filepath"`
	FileName  string `json:"filename"`
	URL       string `json:"url"`
}
