package keymgmt

import (
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"
	"strings"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Custodial wallet keys live in Google KMS as secp256k1 signing keys.
// The resource id stored with the wallet row points at crypto key version 1.

func GenerateSigningKey(ctx context.Context) (string, error) {
	u := uuid.New()

	googleKmsProjectId := viper.Get("GOOGLE_KMS_PROJECT_ID").(string)
	googleKmsLocationId := viper.Get("GOOGLE_KMS_LOCATION_ID").(string)
	googleKmsKeyRingId := viper.Get("GOOGLE_KMS_KEYRING_ID").(string)

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	r := &kmspb.CreateCryptoKeyRequest{
		Parent:      fmt.Sprintf("projects/%s/locations/%s/keyRings/%s", googleKmsProjectId, googleKmsLocationId, googleKmsKeyRingId),
		CryptoKeyId: fmt.Sprintf("pokernight-custodial-wallet-key-%s", u.String()),
		CryptoKey: &kmspb.CryptoKey{
			Purpose: kmspb.CryptoKey_ASYMMETRIC_SIGN,
			VersionTemplate: &kmspb.CryptoKeyVersionTemplate{
				Algorithm:       kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256,
				ProtectionLevel: kmspb.ProtectionLevel_HSM,
			},
		},
	}

	gk, err := client.CreateCryptoKey(ctx, r)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/cryptoKeyVersions/1", gk.Name), nil
}

// GetPublicKey fetches and parses the key's public point. Freshly created
// keys report KEY_PENDING_GENERATION for a while, so the read is retried
// with backoff against a deadline.
func GetPublicKey(ctx context.Context, resourceId string) (*ecdsa.PublicKey, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    time.Minute,
		Factor: 5,
		Jitter: true,
	}

	deadline := time.Now().Add(60 * time.Second)

	log.Trace().Msg(fmt.Sprintf("Getting public key for KMS key, resourceId: %s", resourceId))

	for {
		response, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: resourceId})
		if err == nil {
			return parsePublicKeyPem(response.Pem)
		}
		if !strings.Contains(err.Error(), "KEY_PENDING_GENERATION") {
			return nil, err
		}
		log.Trace().Msg("KMS key is pending creation, will retry")

		time.Sleep(b.Duration())

		if time.Now().After(deadline) {
			err = fmt.Errorf("timeout while trying to get public key")
			log.Error().Err(err)
			return nil, err
		}
	}
}

// SignDigest signs a 32-byte hash and returns the 65-byte [R || S || V]
// signature Ethereum expects. KMS yields DER with an unconstrained S, so S
// is normalized to the lower half order and the recovery id found by
// recovering against the known public key.
func SignDigest(ctx context.Context, resourceId string, publicKey *ecdsa.PublicKey, digest []byte) ([]byte, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	response, err := client.AsymmetricSign(ctx, &kmspb.AsymmetricSignRequest{
		Name: resourceId,
		Digest: &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{Sha256: digest},
		},
	})
	if err != nil {
		return nil, err
	}

	r, s, err := parseDerSignature(response.Signature)
	if err != nil {
		return nil, err
	}

	curveOrder := crypto.S256().Params().N
	halfOrder := new(big.Int).Rsh(curveOrder, 1)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(curveOrder, s)
	}

	sig := make([]byte, 65)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])

	want := crypto.FromECDSAPub(publicKey)
	for _, v := range []byte{0, 1} {
		sig[64] = v
		recovered, err := crypto.Ecrecover(digest, sig)
		if err == nil && string(recovered) == string(want) {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("cannot determine recovery id for KMS signature")
}

func parsePublicKeyPem(pemData string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("KMS public key is not PEM encoded")
	}

	// x509.ParsePKIXPublicKey rejects the secp256k1 curve, so the
	// SubjectPublicKeyInfo envelope is unwrapped by hand.
	var spki struct {
		Algorithm asn1.RawValue
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(block.Bytes, &spki); err != nil {
		return nil, fmt.Errorf("cannot parse KMS public key: %w", err)
	}

	return crypto.UnmarshalPubkey(spki.PublicKey.Bytes)
}

func parseDerSignature(der []byte) (*big.Int, *big.Int, error) {
	var parsed struct {
		R *big.Int
		S *big.Int
	}
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, nil, fmt.Errorf("cannot parse DER signature: %w", err)
	}
	return parsed.R, parsed.S, nil
}
