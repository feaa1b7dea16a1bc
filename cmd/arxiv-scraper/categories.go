package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the categories a scrape would walk, in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := resolveCategories(viper.GetStringSlice("categories"), viper.GetString("categories_file"))
		if err != nil {
			return err
		}
		return printCategories(cmd.OutOrStdout(), cats)
	},
}

func printCategories(w io.Writer, cats []string) error {
	for _, c := range cats {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
