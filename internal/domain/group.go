package domain

import "strings"

type GroupId = int64

// EmailGroup is a named forwarding target. Emails is a free-text
// comma-separated list, edited wholesale by superadmins.
type EmailGroup struct {
	Id     GroupId `json:"id"`
	Name   string  `json:"name"`
	Emails string  `json:"emails"`
}

// Recipients splits the emails string on commas. Addresses are not
// validated, matching the low-friction intake philosophy.
func (g EmailGroup) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(g.Emails, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
