package ai

import (
	"encoding/json"
	"fmt"
)

const systemPrompt = "You are a bookmark classification assistant. Always answer with a single valid JSON object and nothing else."

func buildBatchPrompt(items []BatchItem, folders []Folder) (string, error) {
	foldersJSON, err := json.MarshalIndent(folders, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal folders: %w", err)
	}
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	return fmt.Sprintf(`Classify each of the following web pages into the most suitable EXISTING bookmark folder.

Existing folders:
%s

Pages to classify:
%s

Instructions:
- Only use folder paths that appear in the existing folders list, copied exactly
- Never invent a new folder
- Return exactly one recommendation per page, in the same order as the pages
- If a page already sits in the best folder, return that folder's path

Answer with this JSON shape:
{
  "recommendations": [
    {"url": "page URL", "existingPath": "full path of an existing folder", "reason": "short reason"}
  ]
}`, foldersJSON, itemsJSON), nil
}

func buildPagePrompt(page Page, folders []Folder) (string, error) {
	foldersJSON, err := json.MarshalIndent(folders, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal folders: %w", err)
	}

	return fmt.Sprintf(`Recommend a bookmark folder for the following web page.

Existing folders:
%s

Page:
- Title: %s
- URL: %s
- Description: %s

Instructions:
- Prefer an existing folder when one fits well and copy its path exactly
- Otherwise propose a new folder path, "/"-separated, at most three levels deep

Answer with this JSON shape:
{
  "useExisting": true or false,
  "existingPath": "full path of the existing folder when useExisting is true",
  "newPath": "full path of the new folder when useExisting is false",
  "reason": "short reason"
}`, foldersJSON, page.Title, page.URL, page.Description), nil
}
