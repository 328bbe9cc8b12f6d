package msg

import (
	"encoding/json"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dimerr"
	"github.com/dimchat/dim-go/dkd"
	"github.com/dimchat/dim-go/mkm"
)

// Archivist is the subset of stores.EntityArchivist the Packer needs to
// resolve a receiver's encryption key, a sender's signature key, and a
// group's member list for fan-out encryption.
type Archivist interface {
	Meta(id mkm.ID) (*mkm.Meta, bool)
	Visa(id mkm.ID) (*mkm.Visa, bool)
	Members(group mkm.ID) ([]mkm.ID, bool)
}

// SignKeys is the subset of stores.PrivateKeyStore the Packer needs to
// sign outbound messages and decrypt inbound ones.
type SignKeys interface {
	SignKey(id mkm.ID) (crypto.PrivateKey, bool)
	DecryptKeys(id mkm.ID) ([]crypto.PrivateKey, bool)
}

// Packer drives the Instant->Secure->Reliable pipeline and its inverse
// (spec §4.4). Every failure is a *dimerr.Error so callers can branch on
// Kind without string matching.
type Packer struct {
	Keys      *KeyCache
	Archivist Archivist
	Private   SignKeys
	Factory   crypto.SymmetricKeyFactory
}

func NewPacker(keys *KeyCache, archivist Archivist, private SignKeys, factory crypto.SymmetricKeyFactory) *Packer {
	return &Packer{Keys: keys, Archivist: archivist, Private: private, Factory: factory}
}

// Encrypt turns an Instant into a Secure message: the content is
// serialized to JSON and encrypted under the (sender, destination)
// cipher key, where destination is the overt Group if set and the
// receiver otherwise; the cipher key itself is wrapped under the receiver's visa
// encryption key unless the receiver is broadcast, in which case the
// content travels in the clear and no key is attached (spec §4.4.1).
func (p *Packer) Encrypt(instant *dkd.Instant) (*dkd.Secure, error) {
	plain, err := json.Marshal(instant.Content.ToMap())
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindProtocol, err)
	}

	env := instant.Envelope.Clone()
	destination := instant.Receiver
	if instant.Group != nil {
		destination = *instant.Group
	}

	if instant.IsBroadcast() {
		return &dkd.Secure{Envelope: env, Data: plain}, nil
	}

	cipherKey, err := p.Keys.CipherKey(instant.Sender, destination)
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, err)
	}
	data, err := cipherKey.Encrypt(plain)
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, err)
	}

	if instant.Receiver.IsGroup() {
		keys, err := p.wrapKeyForMembers(instant.Receiver, cipherKey)
		if err != nil {
			return nil, err
		}
		return &dkd.Secure{Envelope: env, Data: data, Keys: keys}, nil
	}

	wrapped, err := p.wrapKeyFor(instant.Receiver, cipherKey)
	if err != nil {
		return nil, err
	}
	return &dkd.Secure{Envelope: env, Data: data, Key: wrapped}, nil
}

// wrapKeyForMembers fans the cipher key out to every known group member
// (spec §4.4.1 step 8): members whose visa keys are unavailable are
// silently skipped, and the encrypt only fails if none succeed.
func (p *Packer) wrapKeyForMembers(group mkm.ID, key crypto.SymmetricKey) (map[string][]byte, error) {
	members, ok := p.Archivist.Members(group)
	if !ok || len(members) == 0 {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrVisaNotFound)
	}
	keys := make(map[string][]byte, len(members))
	for _, member := range members {
		wrapped, err := p.wrapKeyFor(member, key)
		if err != nil || wrapped == nil {
			continue
		}
		keys[member.String()] = wrapped
	}
	if len(keys) == 0 {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrVisaNotFound)
	}
	return keys, nil
}

// wrapKeyFor asymmetric-encrypts a serialized cipher key for one
// receiver using its visa's encryption key. A nil return (no error)
// means the key need not travel on the wire (crypto.SymmetricKey.
// Serialize returning nil for a reused key).
func (p *Packer) wrapKeyFor(receiver mkm.ID, key crypto.SymmetricKey) ([]byte, error) {
	serialized, err := key.Serialize()
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, err)
	}
	if serialized == nil {
		return nil, nil
	}
	visa, ok := p.Archivist.Visa(receiver)
	if !ok || visa.EncryptKey == nil {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrVisaNotFound)
	}
	wrapped, err := visa.EncryptKey.Encrypt(serialized)
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, err)
	}
	return wrapped, nil
}

// Sign turns a Secure message into a Reliable one by signing the raw
// ciphertext bytes (secure.Data) with the sender's key (spec §4.4.2):
// "signature = senderSignKey.sign(decode(data))" — the signature covers
// the exact bytes used as data, not its base64 encoding or the
// surrounding envelope fields.
func (p *Packer) Sign(secure *dkd.Secure, sender mkm.ID) (*dkd.Reliable, error) {
	priv, ok := p.Private.SignKey(sender)
	if !ok {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrNoKey)
	}
	sig, err := priv.Sign(secure.Data)
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, err)
	}
	return &dkd.Reliable{Secure: *secure, Signature: sig}, nil
}

// Verify checks a Reliable message's signature against the sender's
// meta public key, returning the embedded Secure message on success
// (spec §4.4.3 step 1). The sender's visa key is not consulted. Like Sign, it verifies against the raw data
// bytes, not the marshaled envelope.
func (p *Packer) Verify(reliable *dkd.Reliable) (*dkd.Secure, error) {
	meta, ok := p.Archivist.Meta(reliable.Sender)
	if !ok {
		return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrMetaNotFound)
	}
	if !meta.Key.Verify(reliable.Data, reliable.Signature) {
		return nil, dimerr.Wrap(dimerr.KindCrypto, dimerr.ErrBadSignature)
	}
	sm := reliable.Secure
	return &sm, nil
}

// Decrypt turns a Secure message back into an Instant: the cipher key
// is unwrapped with the receiver's own private key (skipped for
// broadcast, whose Data is already plaintext JSON), cached for reuse,
// and then used to decrypt Data into a Content (spec §4.4.3 steps 2-3).
func (p *Packer) Decrypt(secure *dkd.Secure, receiver mkm.ID) (*dkd.Instant, error) {
	env := secure.Envelope.Clone()

	if secure.IsBroadcast() {
		var body map[string]interface{}
		if err := json.Unmarshal(secure.Data, &body); err != nil {
			return nil, dimerr.Wrap(dimerr.KindProtocol, err)
		}
		return dkd.NewInstant(env, dkd.ContentFromMap(body)), nil
	}

	destination := secure.Receiver
	if secure.Group != nil {
		destination = *secure.Group
	}

	wrapped := secure.KeyFor(receiver)
	var cipherKey crypto.SymmetricKey
	if wrapped == nil {
		// No 'key'/'keys' field: this message reuses a key already
		// cached from an earlier exchange (spec §4.4.4 steps 2-3).
		cached, ok := p.Keys.Cached(secure.Sender, destination)
		if !ok {
			return nil, dimerr.Wrap(dimerr.KindCrypto, dimerr.ErrNoKey)
		}
		cipherKey = cached
	} else {
		privKeys, ok := p.Private.DecryptKeys(receiver)
		if !ok || len(privKeys) == 0 {
			return nil, dimerr.Wrap(dimerr.KindIdentity, dimerr.ErrNoKey)
		}

		var serialized []byte
		var lastErr error
		for _, priv := range privKeys {
			serialized, lastErr = priv.Decrypt(wrapped)
			if lastErr == nil {
				break
			}
		}
		if lastErr != nil {
			return nil, dimerr.Wrap(dimerr.KindCrypto, dimerr.ErrBadKey)
		}

		key, err := p.Factory.Parse(serialized)
		if err != nil {
			return nil, dimerr.Wrap(dimerr.KindCrypto, err)
		}
		cipherKey = key
	}
	p.Keys.UpdateKey(secure.Sender, destination, cipherKey)

	plain, err := cipherKey.Decrypt(secure.Data)
	if err != nil {
		return nil, dimerr.Wrap(dimerr.KindCrypto, dimerr.ErrBadKey)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(plain, &body); err != nil {
		return nil, dimerr.Wrap(dimerr.KindProtocol, err)
	}
	return dkd.NewInstant(env, dkd.ContentFromMap(body)), nil
}
