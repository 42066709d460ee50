package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
)

// keyManager holds the Ed25519 pair used to sign and verify tokens.
// The key is loaded from config at first use; without a configured key
// file an ephemeral pair is generated and tokens do not survive a
// restart.
type keyManager struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

var (
	keyManagerInstance *keyManager
	keyManagerOnce     sync.Once
)

func getKeyManager() *keyManager {
	keyManagerOnce.Do(func() {
		km, err := newKeyManager()
		if err != nil {
			log.Error().Err(err).Msg("unable to initialize signing keys")
			return
		}
		keyManagerInstance = km
	})
	return keyManagerInstance
}

func newKeyManager() (*keyManager, error) {
	keyFile := config.Config().Auth.SigningKeyFile
	if keyFile == "" {
		public, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("no signing key configured, using ephemeral key")
		return &keyManager{private: private, public: public}, nil
	}

	pemData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("no PEM block in signing key file")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	private, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("signing key is not an Ed25519 key")
	}
	return &keyManager{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
	}, nil
}
