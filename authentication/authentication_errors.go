package authentication

import "errors"

var (
	UnsupportedOptionsErr   = errors.New("forceNewSession and clearSessionPreference are not supported")
	ConflictingOptionsErr   = errors.New("createIfNone and silent are mutually exclusive")
	ProviderRegisteredErr   = errors.New("authentication provider is already registered")
	ProviderNotInstalledErr = errors.New("authentication provider is not installed")
	ProviderNotFoundErr     = errors.New("authentication provider is not found")
	RequestNotFoundErr      = errors.New("session request is not found")
)
