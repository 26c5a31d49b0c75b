package api

// Alert interface is used for the various monitoring and alerting tools for Plume.
type Alert interface {
	Trigger(description string, details interface{}) error
}
