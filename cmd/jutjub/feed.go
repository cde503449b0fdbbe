package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	feedUC "github.com/khoahotran/jutjub/internal/application/usecase/feed"
	"github.com/khoahotran/jutjub/internal/domain/video"
)

type pageFlags struct {
	page    int
	size    int
	sortBy  string
	sortDir string
}

func (f *pageFlags) bind(cmd *cobra.Command, withSort bool) {
	cmd.Flags().IntVar(&f.page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&f.size, "size", 10, "page size (max 100)")
	if withSort {
		cmd.Flags().StringVar(&f.sortBy, "sort-by", "createdAt", "sort field")
		cmd.Flags().StringVar(&f.sortDir, "sort-dir", "desc", "asc or desc")
	}
}

func (f *pageFlags) value() video.Page {
	return video.Page{Page: f.page, Size: f.size, SortBy: f.sortBy, SortDir: video.SortDir(f.sortDir)}
}

func printFeed(w io.Writer, f *video.Feed) {
	if len(f.Videos) == 0 {
		fmt.Fprintln(w, "No videos.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tLIKES\tCOMMENTS\tVIEWS\tTAGS")
	for _, v := range f.Videos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			v.ID, v.Title, v.UserName, v.Likes, v.CommentsCount, v.ViewsCount, strings.Join(v.Tags, ","))
	}
	tw.Flush()
	if f.TotalPages > 0 {
		fmt.Fprintf(w, "page %d of %d, %d videos\n", f.CurrentPage+1, f.TotalPages, f.TotalItems)
	}
}

func printVideo(w io.Writer, v *video.Video) {
	fmt.Fprintf(w, "%s  %s\n", v.ID, v.Title)
	fmt.Fprintf(w, "by %s", v.UserName)
	if !v.CreatedAt.IsZero() {
		fmt.Fprintf(w, " on %s", v.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
	if v.Description != "" {
		fmt.Fprintf(w, "\n%s\n\n", v.Description)
	}
	fmt.Fprintf(w, "likes %d  comments %d  views %d\n", v.Likes, v.CommentsCount, v.ViewsCount)
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(v.Tags, ", "))
	}
	switch v.Location.Kind() {
	case video.LocationStructured:
		fmt.Fprintf(w, "location: %.5f, %.5f %s\n", *v.Location.Latitude, *v.Location.Longitude, v.Location.Address)
	case video.LocationAddress:
		fmt.Fprintf(w, "location: %s\n", v.Location.Address)
	}
	fmt.Fprintf(w, "video: %s\nthumbnail: %s\n", v.VideoURL, v.ThumbnailURL)
}

func printComments(w io.Writer, cs []video.Comment) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	for _, c := range cs {
		when := ""
		if !c.CreatedAt.IsZero() {
			when = " (" + c.CreatedAt.Format("2006-01-02 15:04") + ")"
		}
		fmt.Fprintf(w, "%s%s: %s\n", c.UserName, when, c.Text)
	}
}

func newFeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List and inspect videos",
	}

	var listPage pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := feedUC.NewListVideosUseCase(a.client, a.logger).
				Execute(cmd.Context(), feedUC.ListVideosInput{Page: listPage.value()})
			if err != nil {
				return err
			}
			return a.print(out.Feed, func(w io.Writer) { printFeed(w, out.Feed) })
		},
	}
	listPage.bind(list, true)

	var withComments bool
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := feedUC.NewGetVideoUseCase(a.client, a.logger).
				Execute(cmd.Context(), feedUC.GetVideoInput{VideoID: args[0], WithComments: withComments})
			if err != nil {
				return err
			}
			return a.print(out, func(w io.Writer) {
				printVideo(w, out.Video)
				if withComments {
					fmt.Fprintln(w)
					printComments(w, out.Comments)
				}
			})
		},
	}
	get.Flags().BoolVar(&withComments, "comments", false, "also list comments")

	cmd.AddCommand(list, get,
		discoverCmd(a, "recent", "List the most recent videos", feedUC.ModeRecent, 0),
		discoverCmd(a, "popular", "List the most viewed videos", feedUC.ModePopular, 0),
		discoverCmd(a, "search <keyword>", "Search videos by keyword", feedUC.ModeSearch, 1),
		discoverCmd(a, "tag <tag>", "List videos with a tag", feedUC.ModeTag, 1),
		newViewsCmd(a),
		newThumbnailCmd(a),
	)
	return cmd
}

func discoverCmd(a *app, use, short string, mode feedUC.DiscoverMode, nargs int) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := feedUC.DiscoverVideosInput{Mode: mode, Page: pf.value()}
			if nargs > 0 {
				in.Term = args[0]
			}
			out, err := feedUC.NewDiscoverVideosUseCase(a.client).Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(out.Feed, func(w io.Writer) { printFeed(w, out.Feed) })
		},
	}
	pf.bind(cmd, false)
	return cmd
}

func newViewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "views <id>",
		Short: "Show the view counter of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := feedUC.NewGetViewStatsUseCase(a.client).Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(stats, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s: %d views", stats.VideoID, stats.Title, stats.ViewsCount)
				if stats.LastAccessed != nil {
					fmt.Fprintf(w, ", last at %s", stats.LastAccessed.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintln(w)
			})
		},
	}
}

func newThumbnailCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "thumbnail <id>",
		Short: "Download a video thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := feedUC.NewGetThumbnailUseCase(a.client, a.cache, a.cfg.Redis.TTL, a.logger).
				Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + extensionFor(out.Thumbnail.ContentType)
			}
			if err := os.WriteFile(output, out.Thumbnail.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %s (%s, %d bytes)\n", output, out.Thumbnail.ContentType, len(out.Thumbnail.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default <id>.<ext>)")
	return cmd
}

func extensionFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/png"):
		return ".png"
	case strings.HasPrefix(contentType, "image/webp"):
		return ".webp"
	case strings.HasPrefix(contentType, "image/gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}
