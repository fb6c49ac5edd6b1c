package extratls

// Domain is the integration's configuration key.
const Domain = "extra_tls_certificates"

// Configuration keys inside the section.
const (
	ConfCA     = "ca"
	ConfClient = "client"
)
