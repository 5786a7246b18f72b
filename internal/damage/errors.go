package damage

import "fmt"

// InvalidAnalysisResponseError indicates the model's damage assessment could
// not be parsed or violated the analysis contract. This is user-actionable:
// clearer images usually fix it.
type InvalidAnalysisResponseError struct {
	Err error
}

func (e *InvalidAnalysisResponseError) Error() string {
	return fmt.Sprintf("the AI model returned an invalid response, please try again with clearer images: %v", e.Err)
}

func (e *InvalidAnalysisResponseError) Unwrap() error { return e.Err }

// InvalidClaimsResponseError indicates the model's claims guide could not be
// parsed or validated.
type InvalidClaimsResponseError struct {
	Err error
}

func (e *InvalidClaimsResponseError) Error() string {
	return fmt.Sprintf("the AI model returned an invalid response for the claims guide: %v", e.Err)
}

func (e *InvalidClaimsResponseError) Unwrap() error { return e.Err }

// BatchError reports that a batch analysis failed because one image's
// analysis failed. No partial results accompany it.
type BatchError struct {
	Index int
	Name  string
	Err   error
}

func (e *BatchError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("analysis of image %d (%s) failed: %v", e.Index+1, e.Name, e.Err)
	}
	return fmt.Sprintf("analysis of image %d failed: %v", e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
