package config

const (
	defaultStateDir              = "~/.local/share/takeoutscout"
	defaultDiscoveriesSubdir     = "discoveries"
	defaultLogSubdir             = "logs"
	defaultHashDBName            = "hashes.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultHashAlgorithm         = "md5"
	defaultHashChunkSize         = 64 * 1024
	defaultMetadataReadLimit     = 8 << 20
	defaultSidecarMaxBytes       = 1 << 20
	defaultMatchThresholdSeconds = 5

	stateDirEnv = "TAKEOUTSCOUT_STATE_DIR"
)

// HashAlgorithms lists the accepted scan.hash_algorithm values.
var HashAlgorithms = []string{"md5", "sha1", "sha256", "xxh64"}

// Default returns a Config populated with repository defaults. Derived paths
// stay empty until normalize fills them from the state directory.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Scan: Scan{
			ComputeHashes:     false,
			ParseSidecars:     true,
			ExtractMetadata:   true,
			SaveDiscovery:     true,
			HashAlgorithm:     defaultHashAlgorithm,
			HashChunkSize:     defaultHashChunkSize,
			MetadataReadLimit: defaultMetadataReadLimit,
			SidecarMaxBytes:   defaultSidecarMaxBytes,
		},
		Dates: Dates{
			MatchThresholdSeconds: defaultMatchThresholdSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
