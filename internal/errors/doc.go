// Package apperrors holds the typed errors fibfill returns (configuration,
// validation, generation, timeout) and maps each of them to a process exit
// code through ExitCodeFor. Types that carry a cause implement Unwrap, so
// errors.Is and errors.As see through them.
package apperrors
