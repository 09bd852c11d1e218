// Package autorepair forwards unrecoverable gateway failures to an
// external self-repair collaborator. The gateway only requests that a
// repair be filed; it never edits code itself, and a dispatch failure
// must never surface to the caller of a completion.
package autorepair

import "context"

// RepairRequest is the payload sent to the self-repair collaborator.
// FixCode carries a remediation hint or the raw error text; the
// gateway never fabricates actual fix content.
type RepairRequest struct {
	IssueTitle  string `json:"issue_title"`
	FilePath    string `json:"file_path"`
	FixCode     string `json:"fix_code"`
	TestCommand string `json:"test_command"`
}

// Dispatcher delivers repair requests to the collaborator.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *RepairRequest) error
}

// NopDispatcher discards all repair requests. Used when no collaborator
// endpoint is configured.
type NopDispatcher struct{}

// Dispatch implements Dispatcher.
func (NopDispatcher) Dispatch(ctx context.Context, req *RepairRequest) error {
	return nil
}
