package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	ERROR            = "ERROR"
	NEVER            = "NEVER"
)

// Tests
const (
	TEST  Tselector = "TEST"
	TEST1           = "TEST1"
)

// Setup
const (
	CONFIG Tselector = "CONFIG"
	INGEST           = "INGEST"
)

// MR
const (
	MR        Tselector = "MR"
	MR_MAP              = "MR_MAP"
	MR_REDUCE           = "MR_REDUCE"
	MR_MERGE            = "MR_MERGE"
)

// Pipelines and driver
const (
	PIPELINE Tselector = "PIPELINE"
	DRIVER             = "DRIVER"
)
