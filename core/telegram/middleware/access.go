package middleware

import tele "gopkg.in/telebot.v4"

// AdminSet is an exact-match allow-list of Telegram user ids.
type AdminSet map[int64]struct{}

// NewAdminSet builds a set from ids, ignoring non-positive values.
func NewAdminSet(ids []int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		if id > 0 {
			set[id] = struct{}{}
		}
	}
	return set
}

// Contains reports whether id is an administrator.
func (s AdminSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// AdminOnly lets only members of admins through. Others are handed to
// onReject, or dropped silently when it is nil.
func AdminOnly(admins AdminSet, onReject tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if u := c.Sender(); u != nil && admins.Contains(u.ID) {
				return next(c)
			}
			if onReject != nil {
				return onReject(c)
			}
			return nil
		}
	}
}
