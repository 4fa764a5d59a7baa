package dbrx

import (
	"encoding/json"
	"fmt"
)

// CommandStatus is the server-reported state of a submitted command.
type CommandStatus string

// Command status values reported by the commands/status endpoint.
const (
	StatusQueued     CommandStatus = "Queued"
	StatusRunning    CommandStatus = "Running"
	StatusCancelling CommandStatus = "Cancelling"
	StatusFinished   CommandStatus = "Finished"
	StatusCancelled  CommandStatus = "Cancelled"
	StatusError      CommandStatus = "Error"
)

// Terminal reports whether a status ends the poll loop. Everything outside
// Queued and Running is terminal, including status strings this SDK does
// not know about.
func (s CommandStatus) Terminal() bool {
	return s != StatusQueued && s != StatusRunning
}

// ResultType discriminates the shape of a command result payload.
type ResultType string

// Result types reported by the commands/status endpoint.
const (
	ResultTypeText  ResultType = "text"
	ResultTypeTable ResultType = "table"
	ResultTypeError ResultType = "error"
	ResultTypeImage ResultType = "image"
)

// CommandInfo is the full status payload for a command run.
type CommandInfo struct {
	// ID is the run identifier assigned at submission.
	ID string `json:"id"`

	// Status is the last observed command status.
	Status CommandStatus `json:"status"`

	// Results holds the result payload, present once the command finished.
	Results *CommandResults `json:"results,omitempty"`
}

// Text returns the text representation of the command result.
// Returns "" when the result carries no text.
func (ci *CommandInfo) Text() string {
	if ci == nil || ci.Results == nil {
		return ""
	}
	return ci.Results.Text()
}

// CommandResults is the result payload of a finished command.
type CommandResults struct {
	// ResultType discriminates the payload shape.
	ResultType ResultType `json:"resultType"`

	// Data is the raw payload: a JSON string for text results, row data
	// for table results. Use Text or Table for typed access.
	Data json.RawMessage `json:"data,omitempty"`

	// Schema describes the columns of a table result.
	Schema []TableColumn `json:"schema,omitempty"`

	// Truncated indicates a table result was cut off by the service.
	Truncated bool `json:"truncated,omitempty"`

	// FileName is the stored plot location of an image result.
	FileName string `json:"fileName,omitempty"`

	// Summary is the short error description of an error result.
	Summary string `json:"summary,omitempty"`

	// Cause is the full error cause of an error result.
	Cause string `json:"cause,omitempty"`
}

// Text returns the textual payload of a text result.
// Returns "" for non-text results and undecodable payloads.
func (r *CommandResults) Text() string {
	if r == nil || r.ResultType != ResultTypeText {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Data, &s); err != nil {
		return ""
	}
	return s
}

// TableColumn describes one column of a table result.
type TableColumn struct {
	// Name is the column name.
	Name string `json:"name"`

	// Type is the column type as reported by the service.
	Type string `json:"type"`
}

// Table is the decoded form of a table result.
type Table struct {
	// Columns are the table columns, in order.
	Columns []TableColumn

	// Rows are the data rows. Cell values follow JSON decoding rules.
	Rows [][]any

	// Truncated indicates the service cut the result off.
	Truncated bool
}

// Table decodes a table result. Returns an error wrapping
// ErrUnexpectedResponse for non-table results and undecodable payloads.
func (r *CommandResults) Table() (*Table, error) {
	if r == nil || r.ResultType != ResultTypeTable {
		return nil, fmt.Errorf("%w: result is not a table", ErrUnexpectedResponse)
	}

	var rows [][]any
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &rows); err != nil {
			return nil, fmt.Errorf("%w: undecodable table data: %v", ErrUnexpectedResponse, err)
		}
	}

	return &Table{
		Columns:   r.Schema,
		Rows:      rows,
		Truncated: r.Truncated,
	}, nil
}
