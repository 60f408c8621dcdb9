package api

import "github.com/dmitrijs2005/courseimage/internal/common"

// Function describes one exposed web-service function.
type Function struct {
	Name          string
	Description   string
	LoginRequired bool
	// Capabilities must all be held in the target context.
	Capabilities []string
	// GRPCMethod is the full gRPC method serving the function, if any.
	GRPCMethod string
}

// UploadCourseImageFunction is the registration of the upload endpoint.
const UploadCourseImageFunction = "local_ws_subir_imagen_curso"

// PingFunction is a read-only liveness check.
const PingFunction = "core_webservice_ping"

// Registry indexes functions by name and by gRPC method.
type Registry struct {
	byName   map[string]Function
	byMethod map[string]Function
}

func NewRegistry(fns ...Function) *Registry {
	r := &Registry{byName: map[string]Function{}, byMethod: map[string]Function{}}
	for _, fn := range fns {
		r.byName[fn.Name] = fn
		if fn.GRPCMethod != "" {
			r.byMethod[fn.GRPCMethod] = fn
		}
	}
	return r
}

// DefaultRegistry lists the functions this service exposes.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Function{
			Name:          UploadCourseImageFunction,
			Description:   "Upload a base64 image and make it the course overview image, replacing any earlier one.",
			LoginRequired: true,
			Capabilities:  []string{common.CapabilityCourseUpdate},
			GRPCMethod:    UploadCourseImageMethod,
		},
		Function{
			Name:        PingFunction,
			Description: "Liveness check.",
			GRPCMethod:  PingMethod,
		},
	)
}

func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

func (r *Registry) ByMethod(fullMethod string) (Function, bool) {
	fn, ok := r.byMethod[fullMethod]
	return fn, ok
}
