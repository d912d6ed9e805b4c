// Topic moderation engine for keyword-threshold suppression in group chats.
//
// This package (`github.com/horizonte-social/charla/topicmod`) counts messages mentioning a fixed set of watched keywords, per chat, and once a threshold is reached deletes further mentions for a cooldown period. It never sanctions a user account. Counters live behind a durable store; admin commands (status, reset) are gated on the chat platform's member roles.
//
// See `cmd/charlad` for a daemon built on this package.
package topicmod
