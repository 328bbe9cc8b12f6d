/* license: https://mit-license.org
 *
 *  Dao-Ke-Dao: Universal Message Module
 *
 *                                Written in 2026
 * ==============================================================================
 * The MIT License (MIT)
 * ==============================================================================
 */
package dkd

/*
 *  Message Transforming
 *  ~~~~~~~~~~~~~~~~~~~~
 *
 *     Instant Message <-> Secure Message <-> Reliable Message
 *     +-------------+     +------------+     +--------------+
 *     |  sender     |     |  sender    |     |  sender      |
 *     |  receiver   |     |  receiver  |     |  receiver    |
 *     |  time       |     |  time      |     |  time        |
 *     |             |     |            |     |              |
 *     |  content    |     |  data      |     |  data        |
 *     +-------------+     |  key/keys  |     |  key/keys    |
 *                         +------------+     |  signature   |
 *                                            +--------------+
 *
 *     data      = password.encrypt(content)
 *     key       = receiver.public_key.encrypt(password)
 *     signature = sender.private_key.sign(data)
 */

// EnvelopeIsBroadcast reports whether an envelope targets one of the two
// well-known broadcast addresses, either directly via Receiver or via an
// overt Group field — the only case where content travels unencrypted.
func EnvelopeIsBroadcast(env Envelope) bool {
	if env.Receiver.IsBroadcast() {
		return true
	}
	if env.Group != nil && env.Group.IsBroadcast() {
		return true
	}
	return false
}
