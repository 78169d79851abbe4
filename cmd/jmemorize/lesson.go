package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmemorize/jmemorize/internal/lesson"
	"github.com/jmemorize/jmemorize/internal/storage"
)

func newLessonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Manage lesson files",
	}
	cmd.AddCommand(
		newLessonCreateCommand(),
		newLessonInfoCommand(),
		newLessonAddCommand(),
	)
	return cmd
}

func newLessonCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new empty lesson file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			path, err := lessonPath(cfg, args[0])
			if err != nil {
				return err
			}

			l := lesson.New()
			l.SetPath(path)
			if err := storage.SaveLesson(l); err != nil {
				return fmt.Errorf("storage.SaveLesson() > %w", err)
			}

			fmt.Printf("Created lesson %s\n", path)
			return nil
		},
	}
}

func newLessonInfoCommand() *cobra.Command {
	var lessonName string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the categories and deck sizes of a lesson",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			l, err := loadLesson(cfg, lessonName)
			if err != nil {
				return err
			}

			fmt.Printf("Lesson: %s\n", l.Name())
			printCategory(l.RootCategory())
			return nil
		},
	}

	cmd.Flags().StringVarP(&lessonName, "lesson", "l", "", "Lesson name or path")
	return cmd
}

func printCategory(category *lesson.Category) {
	indent := ""
	for i := 0; i < category.Depth(); i++ {
		indent += "  "
	}

	cards := category.LocalCards()
	unlearned := 0
	for _, card := range cards {
		if card.IsUnlearned() {
			unlearned++
		}
	}
	fmt.Printf("%s%s: %d cards (%d unlearned)\n", indent, category.Name(), len(cards), unlearned)

	for _, child := range category.Children() {
		printCategory(child)
	}
}

func newLessonAddCommand() *cobra.Command {
	var (
		lessonName   string
		categoryPath string
	)

	cmd := &cobra.Command{
		Use:   "add <front> <back>",
		Short: "Add a card to a lesson",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			l, err := loadLesson(cfg, lessonName)
			if err != nil {
				return err
			}
			category, err := findCategory(l, categoryPath)
			if err != nil {
				return err
			}

			card := lesson.NewCard(args[0], args[1])
			for _, existing := range category.LocalCards() {
				if existing.ContentEquals(card) {
					return fmt.Errorf("card %s already exists in %s", card, category.Path())
				}
			}
			category.AddCard(card)

			if err := storage.SaveLesson(l); err != nil {
				return fmt.Errorf("storage.SaveLesson() > %w", err)
			}
			fmt.Printf("Added card %s to %s\n", card, category.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&lessonName, "lesson", "l", "", "Lesson name or path")
	cmd.Flags().StringVarP(&categoryPath, "category", "c", "", "Category path within the lesson")
	return cmd
}
