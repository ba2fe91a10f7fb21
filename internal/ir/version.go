package ir

// Version constants for the compiler and its fragment format.
const (
	// FragmentVersion is the version of the fragment layout and alias scheme.
	// Bump it when generated SQL changes shape so fingerprints change too.
	FragmentVersion = "1"

	// CompilerVersion is the pgsearch compiler version.
	CompilerVersion = "0.1.0"
)
