package artwork

import (
	"context"
	"fmt"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/resolver"
	"github.com/Akashic-y/Pikax/webclient"
)

// Constructor builds one artwork from its id.
type Constructor func(ctx context.Context, client *webclient.Client, id pikax.ArtworkID) (*Artwork, error)

// Processor resolves id batches into artworks, dispatching on process type.
type Processor struct {
	log    pikax.Logger
	client *webclient.Client

	constructors map[pikax.ProcessType]Constructor
}

func NewProcessor(log pikax.Logger, client *webclient.Client) *Processor {
	return &Processor{
		log:    log,
		client: client,
		constructors: map[pikax.ProcessType]Constructor{
			pikax.ProcessTypeIllust: NewIllust,
			pikax.ProcessTypeManga:  NewManga,
		},
	}
}

// Process resolves every id with the constructor registered for typ. Ids are
// treated as a multiset, duplicates are resolved once per occurrence.
func (p *Processor) Process(ctx context.Context, ids []pikax.ArtworkID, typ pikax.ProcessType, opts resolver.Options) (resolver.Result[*Artwork], error) {
	construct, ok := p.constructors[typ]
	if !ok {
		return resolver.Result[*Artwork]{}, fmt.Errorf("%w: %s", pikax.ErrProcessType, typ)
	}

	if opts.Log == nil {
		opts.Log = p.log
	}

	p.log.Infof("resolving %d %s ids", len(ids), typ)

	res := resolver.Resolve(ids, func(id pikax.ArtworkID) (*Artwork, error) {
		return construct(ctx, p.client, id)
	}, opts)

	p.log.Infof("finished resolving: %d total, %d successes, %d failures",
		len(ids), len(res.Successes), len(res.Failures))

	return res, nil
}
