package services

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/carrental-backend/internal/config"
	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. It returns a nil app
// when no service account is configured.
func InitFirebase(ctx context.Context, cfg config.Firebase) (*firebase.App, error) {
	if cfg.ServiceAccountPath == "" {
		slog.Warn("FIREBASE_SERVICE_ACCOUNT_PATH not set; Firebase auth and push notifications disabled")
		return nil, nil
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.ServiceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}
	return app, nil
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %v", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	id := &models.Identity{UID: decoded.UID}
	id.Email, _ = decoded.Claims["email"].(string)
	id.Picture, _ = decoded.Claims["picture"].(string)
	if name, ok := decoded.Claims["name"].(string); ok {
		id.Name = name
	} else {
		id.Name, _ = decoded.Claims["displayName"].(string)
	}
	return id, nil
}

// ProviderTopic is the FCM topic a provider's devices subscribe to.
// Emails are not valid topic names, so the address is hashed.
func ProviderTopic(email string) string {
	return "provider-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+models.NormalizeEmail(email))).String()
}

// PushNotifier tells providers over FCM that one of their cars was booked.
type PushNotifier struct {
	client *messaging.Client
}

func NewPushNotifier(ctx context.Context, app *firebase.App) (*PushNotifier, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}
	return &PushNotifier{client: client}, nil
}

func bookingMessage(b *models.Booking) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: "Your car was booked",
			Body:  fmt.Sprintf("%s booked your %s", b.RenterName, b.CarName),
		},
		Data: map[string]string{
			"type":           "car_booked",
			"carId":          b.CarID.Hex(),
			"bookingId":      b.ID.Hex(),
			"notificationId": "car_booked_" + b.ID.Hex(),
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
		Topic:   ProviderTopic(b.ProviderEmail),
	}
}

func (p *PushNotifier) BookingCreated(ctx context.Context, b *models.Booking) {
	resp, err := p.client.Send(ctx, bookingMessage(b))
	if err != nil {
		slog.WarnContext(ctx, "push notification failed", "error", err, "booking_id", b.ID.Hex())
		return
	}
	slog.DebugContext(ctx, "push notification sent", "message_id", resp, "booking_id", b.ID.Hex())
}
