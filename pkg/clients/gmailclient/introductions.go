package gmailclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/neighbourly/pkg/db"
)

const introductionSubject = "Meet your new dinner group"

// introductionBody is the email sent to one member of a new group
func introductionBody(recipient db.Contact, others []db.Contact) string {
	var b strings.Builder

	greeting := recipient.Name
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting)
	b.WriteString("You've been matched with a new group. Say hello to:\n\n")

	for _, other := range others {
		name := other.Name
		if name == "" {
			name = "A new neighbour"
		}
		if other.Email != "" {
			fmt.Fprintf(&b, "  - %s <%s>\n", name, other.Email)
		} else {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}

	b.WriteString("\nReply to everyone to pick a date for your first get-together.\n")
	return b.String()
}

// SendGroupIntroduction emails every member of a group the names of the others.
// Members without an email address are introduced but not emailed.
// Returns the number of emails sent.
func (c *Client) SendGroupIntroduction(members []db.Contact) (int, error) {
	sent := 0
	for i, recipient := range members {
		if recipient.Email == "" {
			continue
		}

		others := make([]db.Contact, 0, len(members)-1)
		others = append(others, members[:i]...)
		others = append(others, members[i+1:]...)

		if err := c.SendEmail(recipient.Email, introductionSubject, introductionBody(recipient, others)); err != nil {
			return sent, fmt.Errorf("failed to introduce %s: %w", recipient.Email, err)
		}
		sent++
	}
	return sent, nil
}
