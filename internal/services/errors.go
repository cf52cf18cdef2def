package services

// ValidationError marks a request the client must fix; handlers answer 400.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }
