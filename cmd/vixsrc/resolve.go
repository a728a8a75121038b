package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vixsrc-go/internal/app"
	"vixsrc-go/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve movie <tmdb-id> | resolve tv <tmdb-id> <season> <episode>",
	Short: "Resolve a title and print its streams as JSON",
	Args:  cobra.RangeArgs(2, 4),
	RunE:  resolveRun,
}

func resolveRun(cmd *cobra.Command, args []string) error {
	req, err := parseResolveArgs(args)
	if err != nil {
		return err
	}

	log, logFile := app.NewLogger(cfg)
	if logFile != nil {
		defer logFile.Close()
	}
	resolver, _ := app.NewResolver(cfg, log)

	streams := resolver.Resolve(cmd.Context(), req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string][]types.StreamDescriptor{"streams": streams}); err != nil {
		return err
	}

	if len(streams) == 0 {
		return fmt.Errorf("no stream found for %s", req)
	}
	return nil
}

func parseResolveArgs(args []string) (types.StreamRequest, error) {
	mediaType, err := types.ParseMediaType(args[0])
	if err != nil {
		return types.StreamRequest{}, err
	}

	req := types.StreamRequest{MediaID: args[1], Type: mediaType}
	if mediaType == types.MediaTypeEpisode {
		if len(args) != 4 {
			return types.StreamRequest{}, fmt.Errorf("tv needs <tmdb-id> <season> <episode>")
		}
		if req.Season, err = strconv.Atoi(args[2]); err != nil {
			return types.StreamRequest{}, fmt.Errorf("invalid season %q", args[2])
		}
		if req.Episode, err = strconv.Atoi(args[3]); err != nil {
			return types.StreamRequest{}, fmt.Errorf("invalid episode %q", args[3])
		}
	} else if len(args) != 2 {
		return types.StreamRequest{}, fmt.Errorf("movie takes only <tmdb-id>")
	}

	return req, req.Validate()
}
