package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	uploadUC "github.com/khoahotran/jutjub/internal/application/usecase/upload"
	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/metrics"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		title, description, address string
		tags                        []string
		videoPath, thumbPath        string
		videoType                   string
		lat, lng                    float64
		withCoords                  bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a video with its thumbnail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub := upload.Submission{
				Title:       strings.TrimSpace(title),
				Description: description,
				Tags:        tags,
			}
			if videoPath != "" {
				f, err := upload.OpenFile(videoPath, videoType)
				if err != nil {
					return apperror.NewInvalidInput("cannot read video file: "+err.Error(), err)
				}
				sub.Video = f
			}
			if thumbPath != "" {
				f, err := upload.OpenFile(thumbPath, "")
				if err != nil {
					return apperror.NewInvalidInput("cannot read thumbnail file: "+err.Error(), err)
				}
				sub.Thumbnail = f
			}
			switch {
			case withCoords:
				sub.Location = video.NewCoordinates(lat, lng)
				sub.Location.Address = address
			case address != "":
				sub.Location = &video.Location{Address: address}
			}

			uc := uploadUC.NewSubmitVideoUseCase(a.client, a.sessions, a.publisher, metrics.NewClientMetrics(nil), a.logger)
			handle, err := uc.Execute(cmd.Context(), sub)
			if err != nil {
				return err
			}

			last := -1
			var final upload.Progress
			for p := range handle.Progress {
				final = p
				if a.jsonOut {
					_ = a.print(p, nil)
					continue
				}
				// one line per percent step keeps the output readable
				if p.Status == upload.StatusUploading && p.Percentage == last {
					continue
				}
				last = p.Percentage
				fmt.Fprintf(a.out, "[%3d%%] %s\n", p.Percentage, p.Message)
			}

			v, err := handle.Result()
			if final.Status == upload.StatusError || err != nil {
				return err
			}
			if v != nil && !a.jsonOut {
				fmt.Fprintln(a.out)
				printVideo(a.out, v)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "video title (3-100 characters)")
	f.StringVarP(&description, "description", "d", "", "video description")
	f.StringSliceVar(&tags, "tag", nil, "tag, repeatable or comma separated")
	f.StringVar(&videoPath, "video", "", "video file")
	f.StringVar(&thumbPath, "thumbnail", "", "thumbnail image")
	f.StringVar(&videoType, "video-type", "", "override the video content type")
	f.StringVar(&address, "address", "", "human-readable location")
	f.Float64Var(&lat, "lat", 0, "latitude")
	f.Float64Var(&lng, "lng", 0, "longitude")

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		withCoords = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
	}
	return cmd
}
