/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import "github.com/suparena/recordstore/records"

// StreamResult is one item of a streaming read: a record or an error. After
// an error result the channel is closed.
type StreamResult struct {
	Record *records.Record
	Err    error
}

// StreamOptions configures streaming reads.
type StreamOptions struct {
	// BufferSize is the result channel's capacity (default 100).
	BufferSize int
	// PageSize is the number of rows fetched per backend page (default 100).
	PageSize int32
}

// StreamOption is a functional option for configuring streaming.
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns the default streaming options.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{BufferSize: 100, PageSize: 100}
}

// WithBufferSize sets the result channel's capacity.
func WithBufferSize(size int) StreamOption {
	return func(o *StreamOptions) {
		if size > 0 {
			o.BufferSize = size
		}
	}
}

// WithPageSize sets the rows fetched per backend page.
func WithPageSize(size int32) StreamOption {
	return func(o *StreamOptions) {
		if size > 0 {
			o.PageSize = size
		}
	}
}
