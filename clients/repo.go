package clients

import "context"

type Repo interface {
	Upsert(ctx context.Context, client *Client) error
	Get(ctx context.Context, clientID string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	Delete(ctx context.Context, clientID string) error
}
