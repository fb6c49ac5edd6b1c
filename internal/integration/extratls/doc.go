// Package extratls installs extra TLS trust material into the host's
// cached default TLS contexts.
//
// Configuration:
//
//	extra_tls_certificates:
//	  ca:
//	    - /etc/ssl/extra/internal-ca.pem
//	  client:
//	    - cert: /etc/ssl/extra/client.pem
//	      key: /etc/ssl/extra/client.key
//	      password: changeit
//
// CA bundles are loaded into the verifying default contexts. Client
// certificates are loaded into every default context, verifying or not.
// Loading happens once at startup; nothing is watched or reloaded.
package extratls
