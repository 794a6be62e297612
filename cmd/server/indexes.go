package main

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	mongorepo "github.com/crewboard/crewboard-api/internal/infrastructure/db/mongo"
)

// ensureIndexes creates every collection's indexes at startup.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongorepo.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongorepo.NewProjectRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongorepo.NewTaskRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongorepo.NewCommentRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongorepo.NewNotificationRepository(db).EnsureIndexes(ctx)
}
