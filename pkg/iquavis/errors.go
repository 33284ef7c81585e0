package iquavis

import "fmt"

// AuthError indicates the credential handshake failed. It is fatal: a
// run aborts before any data is read.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// RemoteError indicates a transport or HTTP failure against the remote
// service. Fatal when listing; recoverable per row when updating, in the
// sense that a re-run over the audited output retries the failed rows.
type RemoteError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
