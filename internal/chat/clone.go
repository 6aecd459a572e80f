package chat

import "github.com/davidgault/parley/internal/models"

// Read paths hand out deep copies so callers can marshal results without
// racing later mutations under the store lock.

func cloneUser(u *models.User) models.User {
	out := *u
	out.Friends = cloneIDs(u.Friends)
	out.Incoming = cloneIDs(u.Incoming)
	out.Outgoing = cloneIDs(u.Outgoing)
	out.GroupIDs = cloneIDs(u.GroupIDs)
	return out
}

func cloneMessage(m *models.Message) models.Message {
	out := *m
	out.ReadBy = cloneIDs(m.ReadBy)
	out.Reactions = make([]models.Reaction, len(m.Reactions))
	for i, r := range m.Reactions {
		r.Users = cloneIDs(r.Users)
		out.Reactions[i] = r
	}
	return out
}

func cloneMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	for i := range msgs {
		out[i] = cloneMessage(&msgs[i])
	}
	return out
}

func cloneConversation(c *models.Conversation) models.Conversation {
	out := *c
	out.Participants = cloneIDs(c.Participants)
	out.Messages = cloneMessages(c.Messages)
	return out
}

func cloneGroup(g *models.Group) models.Group {
	out := *g
	out.Admins = cloneIDs(g.Admins)
	out.Members = cloneIDs(g.Members)
	out.Messages = cloneMessages(g.Messages)
	return out
}
