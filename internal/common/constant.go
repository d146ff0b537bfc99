package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// KeySize is the size in bytes of the process-wide content encryption key.
const KeySize = 32
