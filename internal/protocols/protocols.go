// Package protocols pulls every built-in descriptor package in for its
// registration side effect. Importing this package guarantees the
// default registry is fully populated before any parse or fill runs.
package protocols

import (
	_ "firestige.xyz/craft/internal/protocols/ecpri"
	_ "firestige.xyz/craft/internal/protocols/ethernet"
	_ "firestige.xyz/craft/internal/protocols/ipv4"
	_ "firestige.xyz/craft/internal/protocols/ipv6"
	_ "firestige.xyz/craft/internal/protocols/tcp"
	_ "firestige.xyz/craft/internal/protocols/udp"
	_ "firestige.xyz/craft/internal/protocols/vlan"
)
