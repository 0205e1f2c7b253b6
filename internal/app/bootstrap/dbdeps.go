// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/campusfound/campusfound/internal/app/media"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as the app evolves.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	BlobStore     media.BlobStore
}
