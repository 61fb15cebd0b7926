package pull

import "github.com/quillhq/quill/pkg/sync"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the flat object surfaced to the caller of the whole system:
// either a fully populated success or an error with a message, never a
// partial state.
type Result struct {
	Status    string `json:"status"`
	CommitSHA string `json:"commit_sha,omitempty"`
	CommitURL string `json:"commit_url,omitempty"`
	Branch    string `json:"branch,omitempty"`
	PRNumber  int    `json:"pr_number,omitempty"`
	PRURL     string `json:"pr_url,omitempty"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"message"`
}

func successResult(syncResult *sync.Result, prNumber int, prURL, path string) *Result {
	message := "synchronized"
	if syncResult.NoOp {
		message = "nothing to sync"
	}
	return &Result{
		Status:    StatusSuccess,
		CommitSHA: string(syncResult.CommitID),
		CommitURL: syncResult.CommitURL,
		Branch:    syncResult.Branch,
		PRNumber:  prNumber,
		PRURL:     prURL,
		Path:      path,
		Message:   message,
	}
}

// ErrorResult wraps a failure into the flat result shape so an orchestrating
// process can log and continue rather than crash.
func ErrorResult(err error) *Result {
	return &Result{
		Status:  StatusError,
		Message: err.Error(),
	}
}
