// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const totpIssuer = "NewsBombs"

// TOTPSetup is what an admin needs to enroll an authenticator app.
type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
	QRCode string `json:"qrCode"` // PNG data URL
}

// SetupTOTP generates and stores a new secret for the principal. 2FA stays
// disabled until EnableTOTP confirms a code.
func (a *Authenticator) SetupTOTP(ctx context.Context, p *Principal) (*TOTPSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: p.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	if err := a.users.SetTOTPSecret(ctx, p.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	return &TOTPSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	}, nil
}

// EnableTOTP turns on 2FA once the user proves their app produces valid codes.
func (a *Authenticator) EnableTOTP(ctx context.Context, p *Principal, code string) error {
	u, err := a.users.FindByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("enable totp lookup: %w", err)
	}
	if u == nil {
		return ErrUnauthorized
	}
	if u.TOTPSecret == nil || !ValidateCode(code, *u.TOTPSecret, a.now()) {
		return ErrTOTPRequired
	}
	return a.users.EnableTOTP(ctx, u.ID)
}

// ValidateCode checks a 6-digit code against secret at time t, allowing
// one step of clock skew.
func ValidateCode(code, secret string, t time.Time) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
