package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Parameters tuned so a single hash lands around 100ms on commodity
// hardware.
const (
	timeCost    uint32 = 3
	memoryCost  uint32 = 64 * 1024
	parallelism uint8  = 2
	keyLength   uint32 = 32
	saltLength         = 16
)

// Hash derives an argon2id digest of the password with a fresh random
// salt and returns it in PHC string form. Two calls with the same input
// produce different strings.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memoryCost,
		timeCost,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. The
// comparison is constant-time, and anything malformed verifies as
// false rather than erroring.
func Verify(password, encoded string) bool {
	salt, expected, mem, iters, threads, ok := decode(encoded)
	if !ok {
		return false
	}
	actual := argon2.IDKey([]byte(password), salt, iters, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func decode(encoded string) (salt, key []byte, mem, iters uint32, threads uint8, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if n, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || n != 1 || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	var threadsVal uint32
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &threadsVal); err != nil || n != 3 {
		return nil, nil, 0, 0, 0, false
	}
	if threadsVal == 0 || threadsVal > 255 {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, 0, 0, 0, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, 0, 0, 0, false
	}
	return salt, key, mem, iters, uint8(threadsVal), true
}
