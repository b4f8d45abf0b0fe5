package ports

import "rtmslfp/domain/record"

// RecordStore loads persisted simulation output documents into typed,
// read-only records. Implementations must fail with a core.ErrRecordFormat
// error on unparseable documents and tolerate missing spike or LFP sections
// (warning, not error).
type RecordStore interface {
	Load(path string) (*record.SimulationRecord, error)
}
