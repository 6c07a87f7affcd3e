// Package router resolves a client's declared virtual host to a backend
// address through two maps loaded once from config and read-only
// afterward: a host-to-server alias table and a server-to-address table.
package router

import (
	"errors"
	"fmt"
)

// Wildcard is the fallback key in the hosts table, consulted when the
// hostname a client declared has no exact entry.
const Wildcard = "*"

// ErrNoHostFound is returned by Resolve when neither the client's requested
// hostname nor the wildcard fallback has an entry in the hosts table.
var ErrNoHostFound = errors.New("no host found")

// Table is the routing table: two immutable mappings loaded from
// config. hosts maps the virtual hostname a client connected with to a
// server name; servers maps that server name to a dial address.
type Table struct {
	hosts   map[string]string
	servers map[string]string
}

// New builds a routing Table. A hosts table with no Wildcard entry is
// legal: a client whose hostname then has no exact match is turned away at
// resolve time with ErrNoHostFound rather than rejected at startup.
func New(hosts, servers map[string]string) *Table {
	return &Table{hosts: hosts, servers: servers}
}

// Resolution is the outcome of a successful routing lookup: the server name
// and its dial address. A failed lookup is reported as an error from
// Resolve instead.
type Resolution struct {
	ServerName string
	Address    string
}

// Resolve looks up hostname in the hosts table, falling back to the
// wildcard entry, then resolves the resulting server name to a dial
// address.
func (t *Table) Resolve(hostname string) (Resolution, error) {
	serverName, ok := t.hosts[hostname]
	if !ok {
		serverName, ok = t.hosts[Wildcard]
		if !ok {
			return Resolution{}, fmt.Errorf("router: %q: %w", hostname, ErrNoHostFound)
		}
	}

	address, ok := t.servers[serverName]
	if !ok {
		return Resolution{}, fmt.Errorf("router: host %q maps to unknown server %q", hostname, serverName)
	}

	return Resolution{ServerName: serverName, Address: address}, nil
}
