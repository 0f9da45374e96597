/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import "github.com/suparena/recordstore/errors"

// TypeRun is the reserved record type for simulation runs.
const TypeRun = "run"

// Run is a convenience view of a Record of type "run". Its special fields
// are stored as ordinary string data entries, so runs are queryable through
// the same projections as everything else.
type Run struct {
	ID          string
	Application string
	User        string
	Version     string
}

// Record converts the run into its Record form.
func (r Run) Record() *Record {
	rec := New(r.ID, TypeRun)
	rec.Data["application"] = Datum{Value: StringValue(r.Application)}
	if r.User != "" {
		rec.Data["user"] = Datum{Value: StringValue(r.User)}
	}
	if r.Version != "" {
		rec.Data["version"] = Datum{Value: StringValue(r.Version)}
	}
	return rec
}

// RunFromRecord reads the run view back out of a Record.
func RunFromRecord(rec *Record) (*Run, error) {
	if rec.Type != TypeRun {
		return nil, errors.NewValidationError("type", "record is not a run")
	}
	app, ok := rec.Data["application"]
	if !ok || app.Value.Kind() != KindString {
		return nil, errors.NewValidationError("application", "runs require a string application entry")
	}
	run := &Run{ID: rec.ID, Application: app.Value.Str()}
	if user, ok := rec.Data["user"]; ok && user.Value.Kind() == KindString {
		run.User = user.Value.Str()
	}
	if version, ok := rec.Data["version"]; ok && version.Value.Kind() == KindString {
		run.Version = version.Value.Str()
	}
	return run, nil
}
