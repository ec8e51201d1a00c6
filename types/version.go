package types

// Version is the sift release version.
const Version = "0.1.0"
