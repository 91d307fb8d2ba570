// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every command writes in --json mode.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// outputJSON runs handler and writes its result or error as a JSONResponse.
// The handler's error is still returned so the exit code reflects it.
func outputJSON(w io.Writer, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if err != nil {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return err
	}
	return NewJSONResponse(command, data).Write(w)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// MentionData is one scanned mention.
type MentionData struct {
	Raw       string `json:"raw"`
	Form      string `json:"form"`
	Qualifier string `json:"qualifier,omitempty"`
	Fragment  string `json:"fragment"`
	Offset    int    `json:"offset"`
}

// ScanData is returned by the scan command.
type ScanData struct {
	Mentions []MentionData `json:"mentions"`
	Summary  string        `json:"summary"`
}

// ResolveData is returned by the resolve command.
type ResolveData struct {
	Mention string `json:"mention"`
	Path    string `json:"path"`
}

// ArtifactData is one context artifact.
type ArtifactData struct {
	Paths   string `json:"paths"`
	Content string `json:"content"`
}

// LoadData is returned by the load command.
type LoadData struct {
	Artifacts []ArtifactData `json:"artifacts"`
}

// CollectionData is one discovered collection.
type CollectionData struct {
	Name         string `json:"name"`
	Scope        string `json:"scope"`
	Path         string `json:"path"`
	ContextFiles int    `json:"context_files"`
}

// ProfileData is returned by the profile command.
type ProfileData struct {
	Path        string `json:"path"`
	Instruction string `json:"instruction"`
}
