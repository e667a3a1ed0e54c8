package internal

import (
	"campusshare/api/internal/service"
	"campusshare/api/internal/storage"
	"campusshare/api/pkg/security"

	"gorm.io/gorm"
)

// Deps is everything a handler may need
type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Tokens   *security.TokenIssuer
	Users    *service.CredentialStore
	Catalog  *service.Catalog
	Blobs    storage.BlobStore
	Uploader *service.Uploader
	Gateway  *service.Gateway
}
