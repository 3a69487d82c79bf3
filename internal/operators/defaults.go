package operators

import "github.com/maestro/hello-world-dag/internal/ports"

// RegisterDefaults registers the built-in operators.
func RegisterDefaults(r *Registry, store ports.ObjectReader) error {
	if err := r.Register(EmptyOperatorName, Empty{}); err != nil {
		return err
	}
	return r.Register(S3ReadJSONOperatorName, NewS3ReadJSON(store))
}
