package purchase

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const referencePrefix = "SUBX-"

// SnowflakeReferences generates payment references that are unique across API
// instances as long as every instance runs with its own node number.
type SnowflakeReferences struct {
	node *snowflake.Node
}

func NewSnowflakeReferences(node int64) (*SnowflakeReferences, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("creating snowflake node %d: %w", node, err)
	}

	return &SnowflakeReferences{node: n}, nil
}

func (g *SnowflakeReferences) NewReference() string {
	return referencePrefix + strings.ToUpper(g.node.Generate().Base36())
}
