// Command booth exercises the photo booth core from a terminal: apply
// filters to image files, build collages, and manage the memory store
// without a browser.
package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lumabooth/luma/internal/booth"
	"github.com/lumabooth/luma/internal/config"
	"github.com/lumabooth/luma/internal/store"
	"github.com/lumabooth/luma/pkg/compose"
	"github.com/lumabooth/luma/pkg/editor"
	"github.com/lumabooth/luma/pkg/filter"
	"github.com/lumabooth/luma/pkg/gallery"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "booth",
		Short: "Photo booth core: filters, collages and the memory store",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "booth.db", "database path")

	rootCmd.AddCommand(filtersCmd())
	rootCmd.AddCommand(filterCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(collageCmd())
	rootCmd.AddCommand(stripCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(favoriteCmd())
	rootCmd.AddCommand(similarCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getService() (*booth.Service, *store.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.Database.Path = dbPath

	s, err := store.NewSQLiteStoreWithDSN(cfg.Database.Path, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	svc, err := booth.NewService(s, nil, cfg, zap.NewNop())
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return svc, s, nil
}

func readImage(path string) (*filter.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return filter.FromImage(img), nil
}

func writeImage(path string, buf *filter.Buffer, quality int) error {
	if strings.EqualFold(filepath.Ext(path), ".jpg") || strings.EqualFold(filepath.Ext(path), ".jpeg") {
		data, err := booth.EncodeJPEG(buf, quality)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, buf.Image()); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, out.Bytes(), 0644)
}

func filtersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List available filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range filter.All() {
				fmt.Printf("%-16s %-16s %s\n", info.Name, info.Label, info.Description)
			}
			return nil
		},
	}
}

func filterCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "filter [input] [output]",
		Short: "Apply a named filter to an image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !filter.Known(filter.Name(name)) {
				return fmt.Errorf("unknown filter: %s (see 'booth filters')", name)
			}
			buf, err := readImage(args[0])
			if err != nil {
				return err
			}
			filter.Apply(buf, filter.Name(name))
			if err := writeImage(args[1], buf, 92); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%s)\n", args[1], name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "filter", "f", string(filter.GoldenHour), "filter name")
	return cmd
}

func editCmd() *cobra.Command {
	var turns int
	var brightness, contrast, saturation float64
	var crop string

	cmd := &cobra.Command{
		Use:   "edit [input] [output]",
		Short: "Rotate, adjust and crop an image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			adj := editor.Default()
			adj.QuarterTurns = turns
			adj.Brightness = brightness
			adj.Contrast = contrast
			adj.Saturation = saturation

			if crop != "" {
				box := &editor.CropBox{}
				n, err := fmt.Sscanf(crop, "%f,%f,%f,%f", &box.X, &box.Y, &box.Width, &box.Height)
				if err != nil || n != 4 {
					return fmt.Errorf("crop wants x,y,w,h in percent, got %q", crop)
				}
				adj.Crop = box
			}

			buf, err := readImage(args[0])
			if err != nil {
				return err
			}
			out, err := editor.Apply(buf, adj)
			if err != nil {
				return err
			}
			if err := writeImage(args[1], out, 92); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%dx%d)\n", args[1], out.Width, out.Height)
			return nil
		},
	}

	cmd.Flags().IntVar(&turns, "rotate", 0, "clockwise quarter turns")
	cmd.Flags().Float64Var(&brightness, "brightness", 100, "0-200, 100 = unchanged")
	cmd.Flags().Float64Var(&contrast, "contrast", 100, "0-200, 100 = unchanged")
	cmd.Flags().Float64Var(&saturation, "saturation", 100, "0-200, 100 = unchanged")
	cmd.Flags().StringVar(&crop, "crop", "", "crop box as x,y,w,h in percent")
	return cmd
}

func collageCmd() *cobra.Command {
	var layout, out string
	var multiplier int

	cmd := &cobra.Command{
		Use:   "collage [inputs...]",
		Short: "Compose image files into a flattened collage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := compose.NewScene(nil)
			for _, path := range args {
				buf, err := readImage(path)
				if err != nil {
					return err
				}
				scene.AddImage(buf)
			}
			scene.ApplyLayout(compose.Layout(layout))

			before := len(args)
			if dropped := before - scene.Len(); dropped > 0 {
				fmt.Printf("Layout %s holds %d photos; dropped %d\n", layout, scene.Len(), dropped)
			}

			flat, err := scene.Flatten(multiplier)
			if err != nil {
				return err
			}
			if err := writeImage(out, flat, 92); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%dx%d)\n", out, flat.Width, flat.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&layout, "layout", "l", string(compose.Grid2x2), "freeform, grid2x2, grid3x3 or scrapbook")
	cmd.Flags().StringVarP(&out, "out", "o", "collage.png", "output file")
	cmd.Flags().IntVarP(&multiplier, "multiplier", "m", compose.DefaultMultiplier, "export resolution multiplier")
	return cmd
}

func stripCmd() *cobra.Command {
	var theme, out string
	var captions []string
	var multiplier int

	cmd := &cobra.Command{
		Use:   "strip [inputs...]",
		Short: "Render image files into a decorated photo strip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !compose.KnownStripTheme(compose.StripTheme(theme)) {
				return fmt.Errorf("unknown theme: %s (themes: %v)", theme, compose.StripThemes())
			}
			photos := make([]compose.StripPhoto, 0, len(args))
			for i, path := range args {
				buf, err := readImage(path)
				if err != nil {
					return err
				}
				p := compose.StripPhoto{Image: buf}
				if i < len(captions) {
					p.Caption = captions[i]
				}
				photos = append(photos, p)
			}
			flat, err := compose.RenderStrip(photos, compose.StripTheme(theme), multiplier)
			if err != nil {
				return err
			}
			if err := writeImage(out, flat, 92); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%dx%d)\n", out, flat.Width, flat.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&theme, "theme", "t", string(compose.DefaultStripTheme), "bouquet theme")
	cmd.Flags().StringArrayVarP(&captions, "caption", "c", nil, "caption per photo, repeatable")
	cmd.Flags().StringVarP(&out, "out", "o", "strip.png", "output file")
	cmd.Flags().IntVarP(&multiplier, "multiplier", "m", compose.DefaultMultiplier, "export resolution multiplier")
	return cmd
}

func saveCmd() *cobra.Command {
	var caption, mood string

	cmd := &cobra.Command{
		Use:   "save [image]",
		Short: "Save an image file as a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			buf, err := readImage(args[0])
			if err != nil {
				return err
			}
			m, err := svc.SaveFrame(buf, caption, store.Mood(mood))
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", m.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&caption, "caption", "c", "", "caption (defaults to the placeholder)")
	cmd.Flags().StringVarP(&mood, "mood", "m", "", "calm, joyful, nostalgic or peaceful")
	return cmd
}

func listCmd() *cobra.Command {
	var favoritesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			memories, err := svc.List()
			if err != nil {
				return err
			}
			memories = gallery.Project(memories, gallery.Query{FavoritesOnly: favoritesOnly})

			if len(memories) == 0 {
				fmt.Println("No memories yet. Use 'booth save' to create one.")
				return nil
			}
			for _, m := range memories {
				star := " "
				if m.IsFavorite {
					star = "*"
				}
				ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
				fmt.Printf("%s %-24s %s  %s\n", star, m.ID, ts, m.Caption)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&favoritesOnly, "favorites", "f", false, "favorites only")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show memory details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("memory not found: %s", args[0])
			}

			fmt.Printf("ID:        %s\n", m.ID)
			fmt.Printf("Created:   %s\n", time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04:05"))
			fmt.Printf("Caption:   %s\n", m.Caption)
			if m.Mood != "" {
				fmt.Printf("Mood:      %s\n", m.Mood)
			}
			fmt.Printf("Favorite:  %v\n", m.IsFavorite)
			if m.Reflection != "" {
				fmt.Printf("Reflection:\n%s\n", m.Reflection)
			}
			fmt.Printf("Image:     %d bytes\n", len(m.Image))
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := svc.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func favoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite [id]",
		Short: "Toggle a memory's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			on, err := svc.ToggleFavorite(args[0])
			if err != nil {
				return err
			}
			if on {
				fmt.Println("Favorited.")
			} else {
				fmt.Println("Unfavorited.")
			}
			return nil
		},
	}
}

func similarCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "similar [id]",
		Short: "Find memories with a similar color signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService()
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := svc.Similar(args[0], k)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No similar memories found.")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "count", "n", 5, "number of results")
	return cmd
}
