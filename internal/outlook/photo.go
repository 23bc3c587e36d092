package outlook

import (
	"context"
	"encoding/base64"
	"net/url"
	"time"
)

// UserPhoto fetches the account photo and wraps it as a data URL ready for
// an <img> source. A timestamp query parameter defeats intermediary caching
// of the binary response; it does not flush previously cached copies.
func (c *Client) UserPhoto(ctx context.Context, accessToken string) (string, error) {
	q := url.Values{}
	q.Set("timestamp", c.now().UTC().Format(time.RFC3339))

	body, err := c.get(ctx, accessToken, c.baseURL+"/me/photo/$value?"+q.Encode())
	if err != nil {
		return "", err
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(body), nil
}
