package fastedge

import "fastedge.dev/hostapi"

// xqd_secret_store_open opens a secret store by name and returns a handle to it.
// Parameters:
//   - name_addr: pointer to the secret store name string in guest memory
//   - name_size: length of the secret store name
//   - handle_out: pointer where the secret store handle will be written
//
// Returns XqdStatusOK on success, XqdErrNone if the store doesn't exist
func (i *Instance) xqd_secret_store_open(name_addr int32, name_size int32, handle_out int32) int32 {
	name, err := i.readString(name_addr, name_size)
	if err != nil {
		return XqdError
	}

	h, err := i.OpenSecretStore(name)
	return i.writeHandle(h, err, handle_out)
}

// xqd_secret_store_get retrieves a secret from a secret store by key.
// Parameters:
//   - store_handle: handle to the secret store
//   - key_addr: pointer to the secret key string in guest memory
//   - key_size: length of the secret key
//   - secret_handle_out: pointer where the secret handle will be written
//
// Returns XqdStatusOK on success, XqdErrInvalidHandle if the store handle is invalid,
// XqdErrNone if the secret doesn't exist
func (i *Instance) xqd_secret_store_get(store_handle int32, key_addr int32, key_size int32, secret_handle_out int32) int32 {
	key, err := i.readString(key_addr, key_size)
	if err != nil {
		return XqdError
	}

	secret, err := i.LookupSecret(hostapi.Handle(uint32(store_handle)), key)
	if err != nil {
		return xqdStatus(err)
	}

	h, ok := secret.Get()
	if !ok {
		i.memory.PutUint32(HandleInvalid, int64(secret_handle_out))
		return XqdErrNone
	}

	i.memory.PutUint32(uint32(h), int64(secret_handle_out))
	return XqdStatusOK
}

// xqd_secret_store_plaintext retrieves the plaintext value of a secret.
// Parameters:
//   - secret_handle: handle to the secret
//   - plaintext_addr: pointer to buffer where plaintext will be written
//   - plaintext_max_len: maximum size of the plaintext buffer
//   - nwritten_out: pointer where the number of bytes written will be stored
//
// Returns XqdStatusOK on success, XqdErrInvalidHandle if the secret handle is invalid,
// XqdErrBufferLength if the buffer is too small
func (i *Instance) xqd_secret_store_plaintext(secret_handle int32, plaintext_addr int32, plaintext_max_len int32, nwritten_out int32) int32 {
	plaintext, err := i.SecretPlaintext(hostapi.Handle(uint32(secret_handle)))
	if err != nil {
		return xqdStatus(err)
	}

	return i.writeBytes(plaintext, plaintext_addr, plaintext_max_len, nwritten_out)
}

// xqd_secret_store_from_bytes creates a secret handle from raw bytes that don't belong to any
// store.
func (i *Instance) xqd_secret_store_from_bytes(plaintext_addr int32, plaintext_len int32, secret_handle_out int32) int32 {
	if plaintext_len < 0 {
		return XqdError
	}
	buf := make([]byte, plaintext_len)
	if _, err := i.memory.ReadAt(buf, int64(plaintext_addr)); err != nil {
		return XqdError
	}

	i.abilog.Printf("secret_store_from_bytes: plaintext_len=%d", plaintext_len)

	h, err := i.newSecret(buf)
	if err != nil {
		return xqdStatus(err)
	}

	i.memory.PutUint32(uint32(h), int64(secret_handle_out))
	return XqdStatusOK
}
