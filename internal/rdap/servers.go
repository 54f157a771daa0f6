package rdap

// DefaultServers maps suffixes to RDAP base URLs. It is a curated allow-list
// of authoritative servers that answer direct queries; it is not derived from
// the IANA bootstrap registry. The lookup URL is base + label + "." + suffix.
var DefaultServers = map[string]string{
	"com": "https://rdap.verisign.com/com/v1/domain/",
	"net": "https://rdap.verisign.com/net/v1/domain/",
	"org": "https://rdap.publicinterestregistry.org/rdap/domain/",
	"biz": "https://rdap.nic.biz/domain/",
}

// DefaultPrimary is the suffix checked in the cheap phase.
const DefaultPrimary = "com"
