// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/folio/database/models"
	"github.com/blinklabs-io/folio/database/plugin"
	"github.com/blinklabs-io/folio/database/types"

	// Register built-in plugins
	_ "github.com/blinklabs-io/folio/database/plugin/metadata/sqlite"
)

type MetadataStore interface {
	// Database
	Close() error
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Posts
	AddPost(
		[]byte, // postId
		[]byte, // author
		uint64, // height
		types.Txn,
	) error
	GetPost([]byte, types.Txn) (*models.Post, error)
	GetPostsByAuthor([]byte, types.Txn) ([]models.Post, error)
	IncrementCommentCount([]byte, types.Txn) error

	// Claims
	SetClaim(
		[]byte, // claimKey
		[]byte, // owner
		uint64, // height
		types.Txn,
	) error
	DeleteClaim([]byte, types.Txn) error
	GetClaim([]byte, types.Txn) (*models.Claim, error)
	GetClaimsByOwner([]byte, types.Txn) ([]models.Claim, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
