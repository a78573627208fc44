package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/reelnote/backend/internal/notify"
)

// fcmTokenField is the field of users/{uid} the mobile app writes its token to
const fcmTokenField = "fcmToken"

// FirestoreTokenRepository resolves device tokens stored in Firestore
type FirestoreTokenRepository struct {
	client *firestore.Client
}

// NewFirestoreTokenRepository creates a new FirestoreTokenRepository
func NewFirestoreTokenRepository(client *firestore.Client) *FirestoreTokenRepository {
	return &FirestoreTokenRepository{client: client}
}

// DeviceToken returns the single registered token of a user
func (r *FirestoreTokenRepository) DeviceToken(ctx context.Context, userID string) (string, error) {
	snap, err := r.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		return "", notFound(err, "user document %s", userID)
	}

	raw, err := snap.DataAt(fcmTokenField)
	if err != nil {
		return "", fmt.Errorf("user %s: %w", userID, notify.ErrNoToken)
	}
	token, ok := raw.(string)
	if !ok || token == "" {
		return "", fmt.Errorf("user %s: %w", userID, notify.ErrNoToken)
	}
	return token, nil
}
