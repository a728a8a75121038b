package vixsrc

import "vixsrc-go/pkg/types"

// Assemble builds the stream descriptor handed to the player. The playlist is
// bound to the landing page, so players must replay it as Referer.
func Assemble(playlistURL, referer, audioLabel string) types.StreamDescriptor {
	return types.StreamDescriptor{
		Name:  ProviderName,
		Title: autoSelectLabel + "\n" + audioLabel,
		URL:   playlistURL,
		Type:  "url",
		BehaviorHints: types.BehaviorHints{
			ProxyHeaders: &types.ProxyHeaders{
				Request: map[string]string{"Referer": referer},
			},
			NotWebReady: true,
		},
	}
}
