package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/domain/repository"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

// firestoreConversationRepository stores every surface the same way:
// {collection}/{conversationId} holds the summary and watermarks,
// {collection}/{conversationId}/messages holds the log.
type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) doc(surface entity.Surface, id string) *firestore.DocumentRef {
	return r.client.Collection(surface.Collection()).Doc(id)
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, surface entity.Surface, id string) (*entity.Conversation, error) {
	snap, err := r.doc(surface, id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, storeError("Failed to get conversation", err)
	}

	conv, err := decodeConversation(surface, snap)
	if err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	return conv, nil
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, surface entity.Surface, uid string) ([]*entity.Conversation, error) {
	query := r.client.Collection(surface.Collection()).Where("participants", "array-contains", uid)
	return r.list(ctx, surface, query)
}

func (r *firestoreConversationRepository) ListBySurface(ctx context.Context, surface entity.Surface) ([]*entity.Conversation, error) {
	return r.list(ctx, surface, r.client.Collection(surface.Collection()).Query)
}

// list returns conversations most recently active first.
func (r *firestoreConversationRepository) list(ctx context.Context, surface entity.Surface, query firestore.Query) ([]*entity.Conversation, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var convs []*entity.Conversation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to list conversations", err)
		}
		conv, err := decodeConversation(surface, snap)
		if err != nil {
			logger.Warn("Skipping malformed conversation %s/%s: %v", surface.Collection(), snap.Ref.ID, err)
			continue
		}
		convs = append(convs, conv)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastMessageTimestamp.After(convs[j].LastMessageTimestamp)
	})
	return convs, nil
}

func (r *firestoreConversationRepository) Append(ctx context.Context, surface entity.Surface, id string, fn repository.AppendFunc) (*entity.Message, error) {
	convRef := r.doc(surface, id)
	msgRef := convRef.Collection("messages").Doc(uuid.New().String())

	var sent *entity.Message
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current *entity.Conversation
		snap, err := tx.Get(convRef)
		switch {
		case isNotFound(err):
		case err != nil:
			return err
		default:
			if current, err = decodeConversation(surface, snap); err != nil {
				return errors.Internal("Failed to parse conversation data", err)
			}
		}

		conv, msg, err := fn(current)
		if err != nil {
			return err
		}

		// The message and the summary share one commit, so both
		// ServerTimestamp sentinels resolve to the same instant.
		if err := tx.Set(msgRef, map[string]interface{}{
			"text":       msg.Text,
			"senderId":   msg.SenderID,
			"senderSide": msg.SenderSide,
			"timestamp":  firestore.ServerTimestamp,
		}); err != nil {
			return err
		}

		summary := map[string]interface{}{
			"lastMessage":          msg.Text,
			"lastMessageTimestamp": firestore.ServerTimestamp,
			"lastRead": map[string]interface{}{
				msg.SenderSide: firestore.ServerTimestamp,
			},
		}
		if current == nil {
			summary["surface"] = string(surface)
			summary["participants"] = conv.Participants
			summary["createdAt"] = firestore.ServerTimestamp
		}
		if len(conv.Labels) > 0 {
			summary["labels"] = conv.Labels
		}
		if conv.AdID != "" {
			summary["adId"] = conv.AdID
		}
		if conv.AdTitle != "" {
			summary["adTitle"] = conv.AdTitle
		}
		if conv.AssignedModerator != "" && (current == nil || current.AssignedModerator != conv.AssignedModerator) {
			summary["assignedModerator"] = conv.AssignedModerator
			summary["assignedAt"] = firestore.ServerTimestamp
		}

		sent = &entity.Message{
			ID:             msgRef.ID,
			ConversationID: id,
			Text:           msg.Text,
			SenderID:       msg.SenderID,
			SenderSide:     msg.SenderSide,
		}
		return tx.Set(convRef, summary, firestore.MergeAll)
	})
	if err != nil {
		return nil, storeError("Failed to send message", err)
	}

	// The commit time is only known after the fact. Leave the message
	// pending if it cannot be read back.
	if snap, err := msgRef.Get(ctx); err == nil {
		if ts, err := snap.DataAt("timestamp"); err == nil {
			if t, ok := timeValue(ts); ok {
				sent.Timestamp = t
			}
		}
	}
	return sent, nil
}

func (r *firestoreConversationRepository) MarkRead(ctx context.Context, surface entity.Surface, id, side string) error {
	_, err := r.doc(surface, id).Set(ctx, map[string]interface{}{
		"lastRead": map[string]interface{}{
			side: firestore.ServerTimestamp,
		},
	}, firestore.MergeAll)
	return storeError("Failed to mark conversation read", err)
}

func (r *firestoreConversationRepository) UpdateAssignment(ctx context.Context, surface entity.Surface, id string, fn repository.AssignFunc) error {
	convRef := r.doc(surface, id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(convRef)
		if err != nil {
			if isNotFound(err) {
				return errors.NotFound("Conversation", err)
			}
			return err
		}
		current, err := decodeConversation(surface, snap)
		if err != nil {
			return errors.Internal("Failed to parse conversation data", err)
		}

		moderator, err := fn(current)
		if err != nil {
			return err
		}
		if moderator == current.AssignedModerator {
			return nil
		}
		if moderator == "" {
			return tx.Update(convRef, []firestore.Update{
				{Path: "assignedModerator", Value: firestore.Delete},
				{Path: "assignedAt", Value: firestore.Delete},
			})
		}
		return tx.Update(convRef, []firestore.Update{
			{Path: "assignedModerator", Value: moderator},
			{Path: "assignedAt", Value: firestore.ServerTimestamp},
		})
	})
	return storeError("Failed to update assignment", err)
}

func (r *firestoreConversationRepository) messages(surface entity.Surface, id string) firestore.Query {
	return r.doc(surface, id).Collection("messages").OrderBy("timestamp", firestore.Asc)
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, surface entity.Surface, id string) ([]*entity.Message, error) {
	docs, err := r.messages(surface, id).Documents(ctx).GetAll()
	if err != nil {
		return nil, storeError("Failed to list messages", err)
	}
	return decodeMessages(id, docs), nil
}

func (r *firestoreConversationRepository) WatchMessages(ctx context.Context, surface entity.Surface, id string, fn func([]*entity.Message) error) error {
	iter := r.messages(surface, id).Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return storeError("Message subscription failed", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return storeError("Failed to read message snapshot", err)
		}
		if err := fn(decodeMessages(id, docs)); err != nil {
			return err
		}
	}
}

func decodeConversation(surface entity.Surface, snap *firestore.DocumentSnapshot) (*entity.Conversation, error) {
	var conv entity.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, err
	}
	conv.ID = snap.Ref.ID
	if conv.Surface == "" {
		conv.Surface = surface
	}
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	return &conv, nil
}

func decodeMessages(conversationID string, docs []*firestore.DocumentSnapshot) []*entity.Message {
	msgs := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		var msg entity.Message
		if err := doc.DataTo(&msg); err != nil {
			logger.Warn("Skipping undecodable message %s: %v", doc.Ref.Path, err)
			continue
		}
		msg.ID = doc.Ref.ID
		msg.ConversationID = conversationID
		if err := msg.Validate(); err != nil {
			logger.Warn("Skipping malformed message %s: %v", doc.Ref.Path, err)
			continue
		}
		msgs = append(msgs, &msg)
	}
	return msgs
}
