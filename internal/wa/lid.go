package wa

import "go.mau.fi/whatsmeow/types"

// ResolveJID maps a possibly lid-addressed identifier to the canonical
// phone-number scheme. Canonical candidates pass through untouched. Lid
// candidates take the first canonical fallback, scanned in order. When nothing
// resolves, the original candidate comes back with ok=false so callers can
// record the miss; the event is never dropped over it.
func ResolveJID(candidate string, fallbacks ...string) (string, bool) {
	jid, err := types.ParseJID(candidate)
	if err != nil || !isLID(jid) {
		return candidate, true
	}
	for _, fb := range fallbacks {
		if fb == "" {
			continue
		}
		alt, err := types.ParseJID(fb)
		if err == nil && alt.Server == types.DefaultUserServer {
			return fb, true
		}
	}
	return candidate, false
}

// NormalizeJID strips device and agent suffixes from a JID string. Unparseable
// input is returned unchanged.
func NormalizeJID(s string) string {
	jid, err := types.ParseJID(s)
	if err != nil {
		return s
	}
	return jid.ToNonAD().String()
}

func isLID(jid types.JID) bool {
	return jid.Server == types.HiddenUserServer || jid.Server == types.HostedLIDServer
}
