// Package tortransport implements [model.Transport] using tor.
//
// On the first Transmit, we seed the directory cache into the tor data
// directory and bootstrap a tunnel, which we share with later calls. Each
// Transmit then dials the destination through the tunnel SOCKS5 proxy,
// performs a TLS handshake using the host as SNI, writes the request and
// reads the response until the server closes the connection.
package tortransport
