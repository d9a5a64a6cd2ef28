package cmislib

import (
	"context"

	"github.com/cmislib/cmislib.go/pkg/constants"
)

// Policy is an object whose base type is cmis:policy.
type Policy struct {
	*Object
}

func (p *Policy) Kind() ObjectKind { return KindPolicy }

// PolicyText returns cmis:policyText.
func (p *Policy) PolicyText(ctx context.Context) (string, error) {
	props, err := p.Properties(ctx)
	if err != nil {
		return "", err
	}
	return props.String(constants.PropPolicyText), nil
}
