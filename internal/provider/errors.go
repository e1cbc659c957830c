package provider

import "fmt"

// ErrProviderNotFound reports a provider name with no registration.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported reports a model the named provider has no fetcher for.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam reports an absent required query parameter.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials reports missing or rejected provider credentials.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ErrThrottled reports an upstream rate-limit or quota notice. Alpha
// Vantage sends these as HTTP 200 bodies; surfacing the notice as a typed
// error lets the registry fall back to the next provider.
type ErrThrottled struct {
	Provider string
	Notice   string
}

func (e *ErrThrottled) Error() string {
	return fmt.Sprintf("provider %q throttled the request: %s", e.Provider, e.Notice)
}

// ValidateParams checks that every required key is present and non-empty.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if params[key] == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
