package config

const (
	defaultEngine              = "null"
	defaultCandidateListLength = 20
	defaultWorkerMode          = "process"
	defaultGalleryType         = "unconsolidated"
	defaultLogLevel            = "info"
	defaultLogFormat           = "auto"
	defaultExportCodec         = "zstd"
)

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Engine:  Engine{Name: defaultEngine},
		Search:  Search{CandidateListLength: defaultCandidateListLength},
		Workers: Workers{Mode: defaultWorkerMode},
		Gallery: Gallery{Type: defaultGalleryType},
		Logging: Logging{Level: defaultLogLevel, Format: defaultLogFormat},
		Export:  Export{Codec: defaultExportCodec},
	}
}
