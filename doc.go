// Package gallerybench drives a biometric template engine through 1:N
// enrollment, gallery finalization and identification search over a record
// file, and reports a single worst-outcome-wins status.
//
// # Quick Start
//
//	e, _ := engine.New("null")
//	h := gallerybench.New(e, gallerybench.WithWorkerMode(gallerybench.WorkerInProcess))
//	out, err := h.Run(ctx, gallerybench.Invocation{
//	    Modality:  model.ModalityFace,
//	    Action:    model.ActionEnroll1N,
//	    ConfigDir: "config",
//	    EnrollDir: "enroll",
//	    OutputDir: "output",
//	    Stem:      "face",
//	    InputFile: "enroll.txt",
//	    Shards:    4,
//	})
//
// # Phases
//
//   - enroll_1N: the input is split into shards, each worker writes an
//     enrollment log and an edb.<i>/manifest.<i> pair
//   - finalize_1N: shard pairs are consolidated into edb/manifest and handed
//     to the engine once
//   - search_1N, searchMulti_1N: each worker writes a validated candidate
//     list file
//
// # Exit Status
//
// Engine return codes are data. Infrastructure errors and candidate list
// protocol violations fail the worker. NotImplemented from the engine stops
// the phase. Worker statuses reduce Failure > NotImplemented > Success and
// map to exit codes 1, 2 and 0.
//
// # Workers
//
// WorkerProcess (the default) re-executes the binary once per shard with
// the hidden worker subcommand. WorkerInProcess runs shards as goroutines
// sharing the parent's engine.
package gallerybench
