package cmislib

import (
	"context"
	"fmt"

	"github.com/cmislib/cmislib.go/pkg/constants"
)

// Relationship is an object whose base type is cmis:relationship.
type Relationship struct {
	*Object
}

func (r *Relationship) Kind() ObjectKind { return KindRelationship }

func (r *Relationship) String() string {
	return fmt.Sprintf("CMIS relationship %s", r.objectID)
}

// SourceID returns cmis:sourceId.
func (r *Relationship) SourceID(ctx context.Context) (string, error) {
	return r.endpointID(ctx, constants.PropSourceID)
}

// TargetID returns cmis:targetId.
func (r *Relationship) TargetID(ctx context.Context) (string, error) {
	return r.endpointID(ctx, constants.PropTargetID)
}

func (r *Relationship) endpointID(ctx context.Context, prop string) (string, error) {
	props, err := r.Properties(ctx)
	if err != nil {
		return "", err
	}
	id := props.String(prop)
	if id == "" {
		return "", fmt.Errorf("%w: relationship has no %s", constants.ErrProtocolViolation, prop)
	}
	return id, nil
}

// Source fetches the source object.
func (r *Relationship) Source(ctx context.Context) (CmisObject, error) {
	id, err := r.SourceID(ctx)
	if err != nil {
		return nil, err
	}
	return r.repository.GetObject(ctx, id, nil)
}

// Target fetches the target object.
func (r *Relationship) Target(ctx context.Context) (CmisObject, error) {
	id, err := r.TargetID(ctx)
	if err != nil {
		return nil, err
	}
	return r.repository.GetObject(ctx, id, nil)
}
