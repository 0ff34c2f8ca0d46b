// Package main hosts the gallerybench CLI.
//
// The root command runs one phase of a 1:N evaluation:
//
//	gallerybench face enroll_1N -c config -e enroll -o output -h face -i enroll.txt -t 8
//	gallerybench face finalize_1N -c config -e enroll -o output
//	gallerybench face search_1N -c config -e enroll -o output -h face -i search.txt -t 8
//
// Utility commands: verify checks manifests against their EDBs, export and
// import move a finalized gallery to and from file://, s3:// or minio://
// targets, engines lists registered engines and config prints settings.
//
// Process workers re-execute the binary with the hidden worker subcommand.
// Exit status is 0 on success, 2 when the engine does not implement the
// phase and 1 otherwise.
package main
